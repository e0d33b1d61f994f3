package main

import "library-backend/internal/cli"

// @title        Library API
// @version      1.0
// @description  Book catalog and borrow ledger.
// @BasePath     /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in           header
// @name         Authorization
func main() {
	cli.Execute()
}
