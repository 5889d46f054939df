package actions

import "errors"

// ErrUnauthenticated — действие требует сессии.
var ErrUnauthenticated = errors.New("user not authenticated")
