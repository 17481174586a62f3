package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/materials-backend/internal/app"
	"github.com/yungbote/materials-backend/internal/catalog/vocabulary"
	"github.com/yungbote/materials-backend/internal/platform/dbctx"
)

func main() {
	var actorID string
	var dryRun bool
	flag.StringVar(&actorID, "actor", "", "user id recorded as creator of the seeded rows")
	flag.BoolVar(&dryRun, "dry-run", false, "print the vocabulary without writing")
	flag.Parse()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	v := application.Clients.Vocabulary
	if dryRun {
		fmt.Printf("phases=%d properties=%d units=%d\n", len(v.Phases), len(v.Properties), len(v.Units))
		return
	}

	actor := uuid.Nil
	if s := strings.TrimSpace(actorID); s != "" {
		if actor, err = uuid.Parse(s); err != nil {
			fmt.Printf("invalid -actor: %v\n", err)
			os.Exit(1)
		}
	}

	var res vocabulary.SeedResult
	err = application.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var serr error
		res, serr = vocabulary.Seed(dbctx.Context{Ctx: ctx, Tx: tx}, application.Repos.Vocabulary, v, actor, time.Now().UTC())
		return serr
	})
	if err != nil {
		fmt.Printf("seed vocabulary: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded phases=%d properties=%d units=%d\n", res.Phases, res.Properties, res.Units)
}
