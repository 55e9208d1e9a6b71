// Package main provides the Bifrost CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orneryd/bifrost/pkg/bolt"
	"github.com/orneryd/bifrost/pkg/config"
	"github.com/orneryd/bifrost/pkg/diskstorage"
	"github.com/orneryd/bifrost/pkg/ogm"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bifrost",
		Short: "Bifrost - Object-graph mapping toolkit for Cypher databases",
		Long: `Bifrost maps typed Go entities onto Cypher graph databases
(Memgraph, Neo4j) over the Bolt protocol.

The CLI covers the operational side: checking connectivity, running ad-hoc
statements and inspecting the database's indexes and constraints. The
mapping layer itself is used as a library.`,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (environment variables win)")
	rootCmd.PersistentFlags().String("uri", "", "Bolt URI, overrides config")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Bifrost v%s (%s)\n", version, commit)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Verify database connectivity",
		RunE:  runPing,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run <cypher>",
		Short: "Execute a Cypher statement and print the result rows",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatement,
	})

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect database indexes and constraints",
	}
	schemaCmd.AddCommand(&cobra.Command{
		Use:   "indexes",
		Short: "List database indexes",
		RunE:  runIndexes,
	})
	schemaCmd.AddCommand(&cobra.Command{
		Use:   "constraints",
		Short: "List database constraints",
		RunE:  runConstraints,
	})
	rootCmd.AddCommand(schemaCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration: defaults, then the YAML
// file when given, then environment variables, then the --uri flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadFromEnv()
	}

	if uri, _ := cmd.Flags().GetString("uri"); uri != "" {
		cfg.Connection.URI = uri
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func connect(ctx context.Context, cfg *config.Config) (bolt.Conn, error) {
	return bolt.NewNeo4jConn(ctx, bolt.Options{
		URI:            cfg.Connection.URI,
		Database:       cfg.Connection.Database,
		Username:       cfg.Connection.Username,
		Password:       cfg.Connection.Password,
		MaxConnections: cfg.Connection.MaxConnections,
	})
}

func withConn(cmd *cobra.Command, fn func(ctx context.Context, conn bolt.Conn) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Connection.QueryTimeout)
	defer cancel()

	conn, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	return fn(ctx, conn)
}

// withClient builds the mapping client the way a library consumer would:
// the disk_storage config section, when enabled, attaches the side
// property store for on-disk fields.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *ogm.Client) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Connection.QueryTimeout)
	defer cancel()

	conn, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	var opts []ogm.ClientOption
	if cfg.DiskStorage.Enabled {
		store, err := diskstorage.NewBadgerStore(diskstorage.BadgerOptions{
			DataDir:    cfg.DiskStorage.DataDir,
			SyncWrites: cfg.DiskStorage.SyncWrites,
		})
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, ogm.WithDiskStorage(store))
	}

	return fn(ctx, ogm.NewClient(conn, opts...))
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Connection.QueryTimeout)
	defer cancel()

	start := time.Now()
	conn, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ping %s: %w", cfg.Connection.URI, err)
	}
	defer conn.Close(ctx)

	fmt.Printf("OK %s (%s)\n", cfg.Connection.URI, time.Since(start).Round(time.Millisecond))
	return nil
}

func runStatement(cmd *cobra.Command, args []string) error {
	return withConn(cmd, func(ctx context.Context, conn bolt.Conn) error {
		rows, err := conn.ExecuteAndFetch(ctx, args[0], nil)
		if err != nil {
			return err
		}
		for _, row := range rows {
			fmt.Println(formatRow(row))
		}
		fmt.Printf("%d row(s)\n", len(rows))
		return nil
	})
}

func runIndexes(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *ogm.Client) error {
		indexes, err := client.GetIndexes(ctx)
		if err != nil {
			return err
		}
		if len(indexes) == 0 {
			fmt.Println("no indexes")
			return nil
		}
		for _, index := range indexes {
			fmt.Println(index.ToCypher())
		}
		return nil
	})
}

func runConstraints(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *ogm.Client) error {
		constraints, err := client.GetConstraints(ctx)
		if err != nil {
			return err
		}
		if len(constraints) == 0 {
			fmt.Println("no constraints")
			return nil
		}
		for _, constraint := range constraints {
			fmt.Println(constraint.ToCypher())
		}
		return nil
	})
}

func formatRow(row bolt.Row) string {
	out := ""
	for column, value := range row {
		if out != "" {
			out += "  "
		}
		out += fmt.Sprintf("%s=%v", column, value)
	}
	return out
}
