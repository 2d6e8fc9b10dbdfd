package config

import "errors"

// ErrInvalidConfig оборачивает все ошибки валидации конфигурации.
var ErrInvalidConfig = errors.New("invalid configuration")
