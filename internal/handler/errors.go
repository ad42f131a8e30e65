package handler

import "github.com/pkg/errors"

var errUnavailable = errors.New("chat backend not configured")
