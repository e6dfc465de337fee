package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Andre601/WorldGuardWrapper/internal/config"
	"github.com/Andre601/WorldGuardWrapper/internal/logging"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/Andre601/WorldGuardWrapper/internal/protection/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration (default WGW_CONFIG)")
		command    = flag.String("cmd", "list", "Command: list, show, migrate")
		worlds     = flag.String("worlds", "", "Worlds (comma-separated, default from config)")
		regionID   = flag.String("id", "", "Region ID for show")
		from       = flag.String("from", "", "Source driver for migrate (default from config)")
		to         = flag.String("to", "", "Target driver for migrate")
		toDir      = flag.String("to-dir", "", "Target data dir for migrate (default from config)")
		toDSN      = flag.String("to-dsn", "", "Target SQL DSN for migrate")
		validate   = flag.Bool("validate", true, "Decode regions with the default flag set before migrating")
	)
	flag.Parse()

	// Только консоль: предупреждения о повреждённых регионах видны сразу
	logging.SetLogDir("")
	if err := logging.InitDefaultLogger("region-cli"); err != nil {
		log.Fatalf("❌ Failed to init logging: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	worldList := parseStringList(*worlds)
	if len(worldList) == 0 {
		worldList = cfg.Engine.Worlds
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch *command {
	case "list":
		err = withDriver(ctx, cfg.Storage, func(d store.Driver) error {
			return listRegions(ctx, os.Stdout, d, worldList)
		})

	case "show":
		if *regionID == "" || len(worldList) != 1 {
			log.Fatalf("❌ show needs -id and exactly one world in -worlds")
		}
		err = withDriver(ctx, cfg.Storage, func(d store.Driver) error {
			return showRegion(ctx, os.Stdout, d, worldList[0], *regionID)
		})

	case "migrate":
		src := cfg.Storage
		if *from != "" {
			src.Driver = *from
		}
		if *to == "" {
			log.Fatalf("❌ migrate needs -to")
		}
		dst := cfg.Storage
		dst.Driver = *to
		if *toDir != "" {
			dst.DataDir = *toDir
		}
		if *toDSN != "" {
			dst.SQL.DSN = *toDSN
		}
		err = migrate(ctx, os.Stdout, src, dst, worldList, *validate)

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: list, show, migrate")
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

func withDriver(ctx context.Context, cfg store.Config, fn func(store.Driver) error) error {
	d, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}

// listRegions печатает краткую таблицу регионов по мирам
func listRegions(ctx context.Context, w io.Writer, d store.Driver, worlds []string) error {
	for _, world := range worlds {
		records, err := d.Load(ctx, world)
		if err != nil {
			return fmt.Errorf("load %s: %w", world, err)
		}
		fmt.Fprintf(w, "🌍 %s (%d regions, driver %s)\n", world, len(records), d.Name())
		for _, r := range records {
			parent := "-"
			if r.Parent != "" {
				parent = r.Parent
			}
			fmt.Fprintf(w, "  %-24s %-8s prio=%-4d parent=%-16s flags=%d\n", r.ID, r.Type, r.Priority, parent, len(r.Flags))
		}
	}
	return nil
}

// showRegion печатает один регион целиком
func showRegion(ctx context.Context, w io.Writer, d store.Driver, world, id string) error {
	records, err := d.Load(ctx, world)
	if err != nil {
		return fmt.Errorf("load %s: %w", world, err)
	}
	id = strings.ToLower(id)
	for _, r := range records {
		if r.ID != id {
			continue
		}
		fmt.Fprintf(w, "🧱 %s/%s\n", world, r.ID)
		fmt.Fprintf(w, "  type:     %s\n", r.Type)
		fmt.Fprintf(w, "  priority: %d\n", r.Priority)
		if r.Parent != "" {
			fmt.Fprintf(w, "  parent:   %s\n", r.Parent)
		}
		if r.Min != nil && r.Max != nil {
			fmt.Fprintf(w, "  bounds:   (%d, %d, %d) -> (%d, %d, %d)\n", r.Min.X, r.Min.Y, r.Min.Z, r.Max.X, r.Max.Y, r.Max.Z)
		}
		if len(r.Points) > 0 {
			fmt.Fprintf(w, "  points:   %v y=%d..%d\n", r.Points, r.MinY, r.MaxY)
		}
		fmt.Fprintf(w, "  owners:   players=%v groups=%v\n", r.Owners.Players, r.Owners.Groups)
		fmt.Fprintf(w, "  members:  players=%v groups=%v\n", r.Members.Players, r.Members.Groups)

		names := make([]string, 0, len(r.Flags))
		for name := range r.Flags {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  flag %-20s = %v\n", name, r.Flags[name])
		}
		return nil
	}
	return fmt.Errorf("region %q not found in %s", id, world)
}

// migrate копирует регионы миров из src в dst, заменяя данные dst
func migrate(ctx context.Context, w io.Writer, srcCfg, dstCfg store.Config, worlds []string, validate bool) error {
	src, err := store.Open(ctx, srcCfg)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := store.Open(ctx, dstCfg)
	if err != nil {
		return fmt.Errorf("open target: %w", err)
	}
	defer dst.Close()

	registry := protection.NewDefaultFlagRegistry()
	for _, world := range worlds {
		records, err := src.Load(ctx, world)
		if err != nil {
			return fmt.Errorf("load %s: %w", world, err)
		}
		if validate {
			if _, err := protection.DecodeRegions(world, records, registry); err != nil {
				return fmt.Errorf("validate %s: %w", world, err)
			}
		}
		if err := dst.Save(ctx, world, records); err != nil {
			return fmt.Errorf("save %s: %w", world, err)
		}
		fmt.Fprintf(w, "✅ %s: %d regions %s -> %s\n", world, len(records), src.Name(), dst.Name())
	}
	return nil
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
