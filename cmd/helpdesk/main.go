// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/helpdesk"
	"github.com/poiesic/helpdesk/core"
)

func main() {
	app := &cli.App{
		Name:  "helpdesk",
		Usage: "Operational tooling for the helpdesk persistence layer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "conversation-backend",
				Usage: "Conversation backend (relational, object_store)",
			},
			&cli.StringFlag{
				Name:  "order-backend",
				Usage: "Order backend (relational, wide_column)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the SQLite database file",
			},
			&cli.StringFlag{
				Name:  "badger-path",
				Usage: "Path to the BadgerDB data directory",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Print store-wide conversation and order statistics",
				Action: statsCommand,
			},
			{
				Name:      "history",
				Usage:     "Print the formatted history of a conversation",
				ArgsUsage: "CONVERSATION_ID",
				Action:    historyCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of most recent messages to include",
						Value: 10,
					},
				},
			},
			{
				Name:      "orders",
				Usage:     "List orders with a given status, oldest first",
				ArgsUsage: "STATUS",
				Action:    ordersCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of orders to list (0 = all)",
					},
				},
			},
			{
				Name:      "summary",
				Usage:     "Print the receipt for an order",
				ArgsUsage: "ORDER_ID",
				Action:    summaryCommand,
			},
			{
				Name:   "clear",
				Usage:  "Delete all conversations and orders",
				Action: clearCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm the wipe",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// buildConfig starts from the environment and lets flags win.
func buildConfig(c *cli.Context) *helpdesk.Config {
	cfg := helpdesk.ConfigFromEnv()
	if v := c.String("conversation-backend"); v != "" {
		cfg.ConversationBackend = helpdesk.Backend(v)
	}
	if v := c.String("order-backend"); v != "" {
		cfg.OrderBackend = helpdesk.Backend(v)
	}
	if v := c.String("db"); v != "" {
		cfg.SQLitePath = v
	}
	if v := c.String("badger-path"); v != "" {
		cfg.TablePath = v
	}
	return cfg
}

func openStores(c *cli.Context) (*helpdesk.Stores, error) {
	stores, err := helpdesk.Open(context.Background(), buildConfig(c))
	if err != nil {
		return nil, fmt.Errorf("failed to open stores: %w", err)
	}
	return stores, nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()
	stores, err := openStores(c)
	if err != nil {
		return err
	}
	defer stores.Close()

	convStats, err := stores.Conversations().Statistics(ctx)
	if err != nil {
		return fmt.Errorf("conversation statistics: %w", err)
	}
	orderStats, err := stores.Orders().Statistics(ctx)
	if err != nil {
		return fmt.Errorf("order statistics: %w", err)
	}

	fmt.Printf("Conversations: %d (%d messages, %d customers)\n",
		convStats.TotalConversations, convStats.TotalMessages, convStats.UniqueCustomers)
	fmt.Printf("Orders: %d (revenue $%.2f, %d customers)\n",
		orderStats.TotalOrders, orderStats.TotalRevenue, orderStats.UniqueCustomers)
	for _, status := range core.OrderStatuses() {
		if count := orderStats.StatusBreakdown[status]; count > 0 {
			fmt.Printf("  %s: %d\n", status, count)
		}
	}
	return nil
}

func historyCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one conversation ID")
	}

	ctx := context.Background()
	stores, err := openStores(c)
	if err != nil {
		return err
	}
	defer stores.Close()

	history, err := stores.Conversations().FormatHistory(ctx, c.Args().First(), c.Int("limit"))
	if err != nil {
		return err
	}
	fmt.Println(history)
	return nil
}

func ordersCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one order status")
	}
	status, err := core.ParseOrderStatus(c.Args().First())
	if err != nil {
		return err
	}

	ctx := context.Background()
	stores, err := openStores(c)
	if err != nil {
		return err
	}
	defer stores.Close()

	orders, err := stores.Orders().ListByStatus(ctx, status, c.Int("limit"))
	if err != nil {
		return err
	}
	for _, order := range orders {
		fmt.Printf("%s  %-20s  $%.2f  %s\n",
			order.OrderID, order.CustomerName, order.TotalPrice, order.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("%d order(s)\n", len(orders))
	return nil
}

func summaryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one order ID")
	}

	ctx := context.Background()
	stores, err := openStores(c)
	if err != nil {
		return err
	}
	defer stores.Close()

	summary, err := stores.Orders().FormatSummary(ctx, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}

func clearCommand(c *cli.Context) error {
	if !c.Bool("yes") {
		return fmt.Errorf("refusing to wipe without --yes")
	}

	ctx := context.Background()
	stores, err := openStores(c)
	if err != nil {
		return err
	}
	defer stores.Close()

	if err := stores.Conversations().ClearAll(ctx); err != nil {
		return fmt.Errorf("clear conversations: %w", err)
	}
	if err := stores.Orders().ClearAll(ctx); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	fmt.Println("All conversations and orders deleted.")
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
