package simpleblog

// Action identifies an operation subject to authorization.
type Action string

// Guarded actions.
const (
	ActionCreatePost    Action = "create_post"
	ActionEditPost      Action = "edit_post"
	ActionDeletePost    Action = "delete_post"
	ActionViewPost      Action = "view_post"
	ActionCreateComment Action = "create_comment"
	ActionListAccounts  Action = "list_accounts"
	ActionUpdateProfile Action = "update_profile"
)

// Denial reasons carried by ForbiddenError.
const (
	ReasonNotAuthenticated = "not authenticated"
	ReasonNotAuthorOrAdmin = "not the author or an admin"
	ReasonNotSelf          = "not the profile owner"
	ReasonAdminOnly        = "administrators only"
)

// Target is the entity an action operates on. OwnerID is the post's author id
// for post actions and the account id for profile actions; actions that do
// not inspect a target take the zero Target.
type Target struct {
	OwnerID string
}

// PostTarget builds the authorization target for a post.
func PostTarget(p *Post) Target {
	return Target{OwnerID: p.AuthorID}
}

// AccountTarget builds the authorization target for an account.
func AccountTarget(a *Account) Target {
	return Target{OwnerID: a.ID}
}

// Authorize is the single access-control decision table. It is a pure
// function of the principal, the action, and the target: nil means permit,
// a *ForbiddenError means deny. Viewing a single post is always permitted;
// visibility of drafts in listings is a query-shape concern, not a guard
// concern.
func Authorize(p Principal, action Action, target Target) error {
	switch action {
	case ActionCreatePost, ActionCreateComment:
		if p.Anonymous() {
			return &ForbiddenError{Action: action, Reason: ReasonNotAuthenticated}
		}
		return nil

	case ActionEditPost, ActionDeletePost:
		if p.ID == target.OwnerID && !p.Anonymous() {
			return nil
		}
		if p.Admin {
			return nil
		}
		return &ForbiddenError{Action: action, Reason: ReasonNotAuthorOrAdmin}

	case ActionViewPost:
		return nil

	case ActionListAccounts:
		if p.Admin {
			return nil
		}
		return &ForbiddenError{Action: action, Reason: ReasonAdminOnly}

	case ActionUpdateProfile:
		if p.Anonymous() {
			return &ForbiddenError{Action: action, Reason: ReasonNotAuthenticated}
		}
		if p.ID != target.OwnerID {
			return &ForbiddenError{Action: action, Reason: ReasonNotSelf}
		}
		return nil
	}

	return &ForbiddenError{Action: action, Reason: "unknown action"}
}
