// Package domain contains the types shared by every layer: sentinel errors,
// request validation errors, and the classified *Error with its ErrorKind
// taxonomy. Entity types live in domain/nutrition and conversation results in
// domain/chat.
package domain
