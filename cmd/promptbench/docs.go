package main

// General API documentation for swaggo. The served document lives in
// internal/httpapi/swagger.go (build with -tags=swagger).
//
// @title           promptbench API
// @version         1.0
// @description     Batch prompt-by-model comparison runs over local and remote LLM backends.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
