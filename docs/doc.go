// Package docs provides generated OpenAPI documentation.
//
// Specsift API
//
//	@title			Specsift API
//	@version		1.0
//	@description	Page triage and LED display specification extraction API for construction RFP documents.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/specsift/specsift
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/specsift/serve.go -o ./swagger --parseDependency --parseInternal
