// Package config loads Giftwiser configuration.
//
// Configuration files may be YAML (.yaml, .yml) or TOML (.toml). Values of the
// form ${VAR_NAME} are replaced with environment variables before parsing.
// Anything a file leaves out keeps its default, and a few environment
// variables (DB_PATH, STORE_DRIVER, HTTP_ADDR, LOG_LEVEL) override the file.
package config
