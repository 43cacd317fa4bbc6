// Package domain holds the study material model: review items, the
// difficulty scale learners rate reviews with, and the validation rules
// both must satisfy. Session and scheduling logic builds on these types
// in the srs subpackage.
package domain
