package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/andreasstove999/tableorder/internal/cart"
	"github.com/andreasstove999/tableorder/internal/checkout"
	"github.com/andreasstove999/tableorder/internal/clients"
	"github.com/andreasstove999/tableorder/internal/config"
	"github.com/andreasstove999/tableorder/internal/menu"
	"github.com/andreasstove999/tableorder/internal/money"
	"github.com/andreasstove999/tableorder/internal/notify"
)

func main() {
	cfg := config.Load()

	fs := flag.NewFlagSet("tablecart", flag.ExitOnError)
	fs.StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.AuthToken, "token", cfg.AuthToken, "auth token")
	fs.StringVar(&cfg.TableID, "table-id", cfg.TableID, "table id")
	fs.StringVar(&cfg.TableNumber, "table", cfg.TableNumber, "table number")
	fs.StringVar(&cfg.SessionToken, "session", cfg.SessionToken, "table session token")
	picksArg := fs.String("add", "", "items to order as id[:qty],id[:qty]")
	phone := fs.String("phone", "", "optional 10 digit contact number")
	submit := fs.Bool("submit", false, "place the order")
	_ = fs.Parse(os.Args[1:])

	logger := log.New(os.Stderr, "[tablecart] ", log.LstdFlags)

	sess := cfg.Session()
	if err := sess.ValidateTable(); err != nil {
		logger.Fatalf("session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := clients.NewClient("backend", sess.BaseURL, sess.Token, clients.NewHTTPClient(cfg.UpstreamTimeout))
	items, err := clients.NewMenuClient(backend).List(ctx, sess.SessionToken)
	if err != nil {
		logger.Fatalf("load menu: %v", err)
	}
	catalog := menu.NewCatalog(items)

	if *picksArg == "" {
		printMenu(os.Stdout, catalog)
		return
	}

	picks, err := parsePicks(*picksArg)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	notifier := notify.NewLogNotifier(logger)
	c := cart.New(notifier)
	for _, id := range applyPicks(c, catalog, picks) {
		logger.Printf("item %s is not on the menu, skipped", id)
	}
	printCart(os.Stdout, c)

	if !*submit {
		return
	}

	var opts []checkout.Option
	if *phone != "" {
		opts = append(opts, checkout.WithCustomerPhone(*phone))
	}
	created, err := checkout.New(clients.NewOrderClient(backend), notifier).Submit(ctx, c, sess, opts...)
	if err != nil {
		logger.Fatalf("place order: %v", err)
	}
	fmt.Fprintf(os.Stdout, "order %s placed for table %s\n", created.ID, sess.TableNumber)
}

func printMenu(w io.Writer, catalog *menu.Catalog) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tUNIT\tPRICE")
	for _, it := range catalog.Items() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Unit, money.Format(it.Price))
	}
	_ = tw.Flush()
}

func printCart(w io.Writer, c *cart.Cart) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, l := range c.Lines() {
		fmt.Fprintf(tw, "%s\tx%d\t%s\n", l.Item.Name, l.Quantity, money.Format(l.Total()))
	}
	fmt.Fprintf(tw, "%d item(s)\t\t%s\n", c.TotalItems(), money.Format(c.TotalPrice()))
	_ = tw.Flush()
}
