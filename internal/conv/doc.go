// Package conv holds checked integer conversions for binary headers.
package conv
