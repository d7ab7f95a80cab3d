// Package domain contains the core business entities, value objects, and
// domain logic of the application: the Task aggregate with its label set,
// the status transition guard, and the label reconciliation rules. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
