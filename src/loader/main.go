// Command loader prints the schema as DDL for atlas:
//
//	atlas migrate diff --env gorm
package main

import (
	"bitlibro/src/boot"
	"bitlibro/src/models"
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"
)

func main() {
	stmts, err := gormschema.New("postgres",
		gormschema.WithJoinTable(&models.Book{}, "Genres", &models.BookGenre{}),
	).Load(boot.Models()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
	io.WriteString(os.Stdout, "CREATE EXTENSION IF NOT EXISTS btree_gist;\n")
	io.WriteString(os.Stdout, boot.OverlapConstraintDDL()+";\n")
}
