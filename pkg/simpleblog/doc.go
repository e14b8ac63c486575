// Package simpleblog provides the content and authorization domain model of a
// multi-user blogging platform: accounts, posts, comments, and the binary
// image blobs those documents reference.
//
// It exposes a single Service interface that orchestrates registration and
// login, post and comment lifecycle, profile management, and blob association
// (create-on-write, replace-on-update, cascade-on-delete). Implementations of
// repositories (memory, Postgres, MongoDB) and blob stores (memory,
// filesystem, S3) are provided under subpackages and injected at construction
// time.
//
// Authorization is centralized in a single pure decision table (Authorize);
// every denied operation surfaces as a Forbidden outcome carrying a
// human-readable reason, never as a silent degraded permit.
package simpleblog
