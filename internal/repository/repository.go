// Package repository persists sessions, rollover drafts and rollover history.
package repository

import "errors"

var ErrNotFound = errors.New("not found")
