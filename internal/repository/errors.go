package repository

import "errors"

// ErrNotFound is returned by every lookup that matches no row, so the
// service layer never has to know which ORM error the driver produced.
var ErrNotFound = errors.New("record not found")
