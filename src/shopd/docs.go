// Package main Storefront media storage API
//
// @title           shopd API
// @version         1.0
// @description     Storefront media storage: uploads, file listing and storage provider settings.
//
// @host            localhost:3001
// @BasePath        /
// @schemes         https http
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication. Prefix the token with "Bearer ".
package main
