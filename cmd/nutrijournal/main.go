package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"nutrijournal/internal/app"
	"nutrijournal/internal/catalog"
	"nutrijournal/internal/config"
	"nutrijournal/internal/database"
	"nutrijournal/internal/frontmatter"
	"nutrijournal/internal/importer"
	"nutrijournal/internal/llm"
	"nutrijournal/internal/logging"
	"nutrijournal/internal/mealplan"
	"nutrijournal/internal/metrics"
	"nutrijournal/internal/nutrition"
	"nutrijournal/internal/suggest"
)

const usage = `Usage: nutrijournal <command> [flags]

Commands:
  show        print a day's summary
  add         add a product portion to a section
  add-recipe  add recipe servings to a section
  remove      remove an item from a section by index
  scale       change an item's quantity or servings
  targets     set the day's nutrition targets
  wellness    record mood/sleep/steps/notes for a day
  import      import a recipe from a URL into the catalog
  suggest     let the model draft a day plan (needs GEMINI_API_KEY)
  products    list catalog products
  recipes     list catalog recipes
`

func main() {
	logging.Setup()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	catalogRepo := catalog.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	days, err := mealplan.NewRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize journal directory: %v", err)
	}

	service := app.NewService(days, catalogRepo, metricsStore)

	if err := run(ctx, os.Args[1], os.Args[2:], cfg, service, catalogRepo, days); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, command string, args []string, cfg *config.Config,
	service *app.Service, catalogRepo *catalog.Repository, days *mealplan.Repository) error {

	switch command {
	case "show":
		fs := flag.NewFlagSet("show", flag.ExitOnError)
		date := fs.String("date", "", "day to show (YYYY-MM-DD, default today)")
		fs.Parse(args)
		day, err := service.Day(ctx, *date)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n%s\n", day.Date, mealplan.RenderSummary(day))
		return nil

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		date := fs.String("date", "", "day (default today)")
		section := fs.String("section", "snack", "section id")
		slug := fs.String("product", "", "product slug")
		quantity := fs.Float64("quantity", 0, "quantity in the product's portion unit")
		fs.Parse(args)
		if *slug == "" {
			return fmt.Errorf("missing -product")
		}
		return service.AddProduct(ctx, *date, *section, *slug, *quantity)

	case "add-recipe":
		fs := flag.NewFlagSet("add-recipe", flag.ExitOnError)
		date := fs.String("date", "", "day (default today)")
		section := fs.String("section", "dinner", "section id")
		slug := fs.String("recipe", "", "recipe slug")
		servings := fs.Float64("servings", 1, "servings count")
		fs.Parse(args)
		if *slug == "" {
			return fmt.Errorf("missing -recipe")
		}
		return service.AddRecipe(ctx, *date, *section, *slug, *servings)

	case "remove":
		fs := flag.NewFlagSet("remove", flag.ExitOnError)
		date := fs.String("date", "", "day (default today)")
		section := fs.String("section", "", "section id")
		index := fs.Int("index", -1, "item index within the section")
		fs.Parse(args)
		return service.RemoveItem(ctx, *date, *section, *index)

	case "scale":
		fs := flag.NewFlagSet("scale", flag.ExitOnError)
		date := fs.String("date", "", "day (default today)")
		section := fs.String("section", "", "section id")
		index := fs.Int("index", -1, "item index within the section")
		amount := fs.Float64("amount", 0, "new quantity or servings count")
		fs.Parse(args)
		return service.RescaleItem(ctx, *date, *section, *index, *amount)

	case "targets":
		fs := flag.NewFlagSet("targets", flag.ExitOnError)
		date := fs.String("date", "", "day (default today)")
		kcal := fs.Float64("kcal", 0, "calorie target")
		protein := fs.Float64("protein", 0, "protein target, g")
		fat := fs.Float64("fat", 0, "fat target, g")
		carbs := fs.Float64("carbs", 0, "carbs target, g")
		fs.Parse(args)
		return service.SetTargets(ctx, *date, nutrition.Totals{
			Kcal: *kcal, Protein: *protein, Fat: *fat, Carbs: *carbs,
		})

	case "wellness":
		fs := flag.NewFlagSet("wellness", flag.ExitOnError)
		date := fs.String("date", "", "day (default today)")
		mood := fs.String("mood", "", "mood note")
		sleep := fs.Float64("sleep", 0, "hours of sleep")
		steps := fs.Float64("steps", 0, "step count")
		notes := fs.String("notes", "", "free-form notes")
		fs.Parse(args)
		w := mealplan.Wellness{Mood: *mood, Notes: *notes}
		if *sleep > 0 {
			w.SleepHours = nutrition.Float(*sleep)
		}
		if *steps > 0 {
			w.Steps = nutrition.Float(*steps)
		}
		return service.LogWellness(ctx, *date, w)

	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		url := fs.String("url", "", "recipe page URL")
		fs.Parse(args)
		if *url == "" {
			return fmt.Errorf("missing -url")
		}
		rec, err := importer.New(catalogRepo).ImportURL(ctx, *url)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %q as %s (%s kcal/serving)\n",
			rec.Title, rec.Slug, frontmatter.FormatNumber(rec.Nutrition.Kcal))
		return nil

	case "suggest":
		fs := flag.NewFlagSet("suggest", flag.ExitOnError)
		date := fs.String("date", "", "day (default today)")
		kcal := fs.Float64("kcal", 0, "calorie target to aim for")
		fs.Parse(args)
		if cfg.GeminiAPIKey == "" {
			return fmt.Errorf("suggest requires GEMINI_API_KEY")
		}
		gen, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return err
		}
		if closer, ok := gen.(llm.Closer); ok {
			defer closer.Close()
		}
		planner := suggest.NewPlanner(catalogRepo, gen, service)
		applied, err := planner.SuggestDay(ctx, days.NormalizeDate(*date), *kcal)
		if err != nil {
			return err
		}
		fmt.Printf("Added %d suggested entries\n", applied)
		return nil

	case "products":
		list, err := catalogRepo.ListProducts(ctx)
		if err != nil {
			return err
		}
		for _, p := range list {
			fmt.Printf("%-24s %s (%s %s, %s kcal)\n", p.Slug, p.Title,
				frontmatter.FormatNumber(p.PortionAmount), p.PortionUnit,
				frontmatter.FormatNumber(p.Nutrition.Kcal))
		}
		return nil

	case "recipes":
		list, err := catalogRepo.ListRecipes(ctx)
		if err != nil {
			return err
		}
		for _, r := range list {
			fmt.Printf("%-24s %s (%s kcal/serving)\n", r.Slug, r.Title,
				frontmatter.FormatNumber(r.Nutrition.Kcal))
		}
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
