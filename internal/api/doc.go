// Package api provides the landing domain provisioning REST API.
//
//	@title						Landing Domain API
//	@version					1.0
//	@description				Provisions landing domains across the DNS and hosting providers and tracks their deployments.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package api
