package main

// General API documentation for swaggo. Run `make swagger-gen` to regenerate.
//
// @title           compressd API
// @version         1.0
// @description     HTTP API for prompt compression backed by a bounded worker pool.
//
// @contact.name   compressd maintainers
// @contact.url    https://github.com/your-org/compressd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
