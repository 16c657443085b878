package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"lotmarket/internal/auction"
	"lotmarket/internal/config"
	"lotmarket/internal/gateway"
	"lotmarket/internal/models"
	"lotmarket/internal/session"
	"lotmarket/internal/storage"
	"lotmarket/services/auction/command"
	"lotmarket/utils"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lotmarket: %v\n", err)
		os.Exit(1)
	}
	utils.SetLogLevel(cfg.LogLevel)

	kv, cleanup, err := openStorage(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lotmarket: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	sessions := session.NewStore(kv)
	service := auction.NewService(gateway.New(cfg.APIBase, sessions))
	commands := command.New(service, sessions, os.Stdout)

	if err := run(commands, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "lotmarket: %v\n", err)
		os.Exit(1)
	}
}

// openStorage picks the configured state backend
func openStorage(cfg config.Config) (storage.KeyValue, func(), error) {
	if cfg.StateBackend == config.BackendSQLite {
		if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create state dir: %w", err)
		}
		store, err := storage.OpenSQLStore(cfg.StatePath())
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	return storage.NewFileStore(cfg.StatePath()), func() {}, nil
}

func run(commands *command.Commands, name string, args []string) error {
	switch name {
	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		username := fs.String("name", "", "profile name")
		email := fs.String("email", "", "student email ("+auction.EmailDomain+")")
		password := fs.String("password", "", "password (min 8 characters)")
		fs.Parse(args)
		return commands.Register(*username, *email, *password)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "student email")
		password := fs.String("password", "", "password")
		fs.Parse(args)
		return commands.Login(*email, *password)

	case "logout":
		return commands.Logout()

	case "whoami":
		return commands.Whoami()

	case "browse":
		fs := flag.NewFlagSet("browse", flag.ExitOnError)
		query := fs.String("q", "", "filter by title or description")
		sortMode := fs.String("sort", "", "recommended, newest or most-bids")
		fs.Parse(args)
		return commands.Browse(*query, *sortMode)

	case "show":
		fs := flag.NewFlagSet("show", flag.ExitOnError)
		id := fs.String("id", "", "listing ID")
		fs.Parse(args)
		return commands.Show(*id)

	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		input, err := listingFlags(fs, args)
		if err != nil {
			return err
		}
		return commands.Create(input)

	case "edit":
		fs := flag.NewFlagSet("edit", flag.ExitOnError)
		id := fs.String("id", "", "listing ID")
		input, err := listingFlags(fs, args)
		if err != nil {
			return err
		}
		return commands.Update(*id, input)

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		id := fs.String("id", "", "listing ID")
		fs.Parse(args)
		return commands.Delete(*id)

	case "bid":
		fs := flag.NewFlagSet("bid", flag.ExitOnError)
		id := fs.String("id", "", "listing ID")
		amount := fs.Float64("amount", 0, "bid amount in NOK")
		fs.Parse(args)
		return commands.Bid(*id, *amount)

	case "profile":
		return commands.Profile()

	case "profile-edit":
		fs := flag.NewFlagSet("profile-edit", flag.ExitOnError)
		bio := fs.String("bio", "", "profile bio")
		avatarURL := fs.String("avatar-url", "", "avatar image URL")
		avatarAlt := fs.String("avatar-alt", "", "avatar alt text")
		fs.Parse(args)
		return commands.EditProfile(*bio, *avatarURL, *avatarAlt)

	case "my-listings":
		return commands.MyListings()

	case "my-bids":
		return commands.MyBids()

	default:
		usage()
		return fmt.Errorf("unknown command %q", name)
	}
}

// listingFlags registers and parses the shared create/edit listing flags
func listingFlags(fs *flag.FlagSet, args []string) (auction.ListingInput, error) {
	title := fs.String("title", "", "listing title")
	description := fs.String("description", "", "listing description")
	ends := fs.String("ends", "", "auction end (RFC 3339, e.g. 2026-09-30T18:00:00Z)")
	mediaURL := fs.String("media-url", "", "image URL")
	mediaAlt := fs.String("media-alt", "", "image alt text")
	fs.Parse(args)

	input := auction.ListingInput{
		Title:       *title,
		Description: *description,
	}

	if *ends != "" {
		endsAt, err := time.Parse(time.RFC3339, *ends)
		if err != nil {
			return auction.ListingInput{}, fmt.Errorf("please use a valid end date, e.g. 2026-09-30T18:00:00Z: %w", err)
		}
		input.EndsAt = endsAt
	}

	if *mediaURL != "" {
		alt := *mediaAlt
		if alt == "" {
			alt = *title
		}
		input.Media = []models.Media{{URL: *mediaURL, Alt: alt}}
	}

	return input, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: lotmarket <command> [flags]

Account:
  register      create an account (-name, -email, -password)
  login         sign in (-email, -password)
  logout        sign out
  whoami        show the signed-in user

Listings:
  browse        list active listings (-q, -sort)
  show          show one listing with bids (-id)
  create        create a listing (-title, -description, -ends, -media-url)
  edit          edit a listing (-id plus listing flags)
  delete        delete a listing (-id)
  bid           bid on a listing (-id, -amount)

Profile:
  profile       show your profile
  profile-edit  update bio and avatar (-bio, -avatar-url)
  my-listings   your active auctions
  my-bids       your bids`)
}
