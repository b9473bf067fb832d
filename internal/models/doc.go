// Package models defines the core domain models for Giftwiser.
//
// # Models
//
//   - Person: someone the user is planning gifts for
//   - Idea: a gift idea (text plus a captured photo) owned by one Person
//
// # Design Principles
//
// 1. **Ownership by embedding**: Ideas live inside their Person; there is no
// separate idea table, so deleting a Person drops its Ideas with it.
// 2. **Insertion order is stored order**: People and Ideas keep the order in
// which they were added. Display orderings (see SortByBirthday) are computed
// at read time and never written back.
// 3. **Opaque values**: dates of birth are kept as "YYYY/MM/DD" strings and
// image references are opaque strings. The data layer does not validate them.
package models
