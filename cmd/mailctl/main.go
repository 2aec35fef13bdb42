package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/edvin/mailpanel/internal/config"
	"github.com/edvin/mailpanel/internal/mailctl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		fs := flag.NewFlagSet("seed", flag.ExitOnError)
		file := fs.String("f", "", "Path to seed definition YAML file (required)")
		fs.Parse(os.Args[2:])

		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag is required")
			fs.Usage()
			os.Exit(1)
		}

		if err := mailctl.Seed(*file, os.Stdout); err != nil {
			fail(err)
		}

	case "pw":
		fs := flag.NewFlagSet("pw", flag.ExitOnError)
		scheme := fs.String("s", "", "Password scheme (default: PASSWORD_SCHEME)")
		password := fs.String("p", "", "Plaintext password (default: read from stdin)")
		test := fs.String("t", "", "Encoded credential to verify the password against")
		list := fs.Bool("l", false, "List supported schemes")
		fs.Parse(os.Args[2:])

		cfg, err := config.Load()
		if err != nil {
			fail(err)
		}
		if err := cfg.Validate(config.RoleMailctl); err != nil {
			fail(err)
		}

		if *list {
			mailctl.ListSchemes(cfg.Scheme(), os.Stdout)
			return
		}

		err = mailctl.Pw(mailctl.PwOptions{Scheme: *scheme, Password: *password, Test: *test}, cfg.Scheme(), os.Stdin, os.Stdout)
		if errors.Is(err, mailctl.ErrVerifyFailed) {
			fmt.Fprintln(os.Stderr, "Password verification failed")
			os.Exit(2)
		}
		if err != nil {
			fail(err)
		}

	case "dkim":
		if len(os.Args) < 3 || os.Args[2] != "refresh" {
			fmt.Fprintln(os.Stderr, "Usage: mailctl dkim refresh [-api URL] [-all] <domain-id>")
			os.Exit(1)
		}
		defaultURL, apiKey := mailctl.ResolveEndpoint()
		fs := flag.NewFlagSet("dkim refresh", flag.ExitOnError)
		apiURL := fs.String("api", defaultURL, "mailpanel API base URL")
		all := fs.Bool("all", false, "Refresh every domain")
		fs.Parse(os.Args[3:])

		if apiKey == "" {
			fail(errors.New("no API key: set MAILPANEL_API_KEY or activate a profile"))
		}
		client := mailctl.NewClient(*apiURL, apiKey)

		if *all {
			if err := mailctl.RefreshAllDKIM(client, os.Stdout); err != nil {
				fail(err)
			}
			return
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: mailctl dkim refresh [-api URL] [-all] <domain-id>")
			os.Exit(1)
		}
		if err := mailctl.RefreshDKIM(client, fs.Arg(0), os.Stdout); err != nil {
			fail(err)
		}

	case "profile":
		profileCommand(os.Args[2:])

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func profileCommand(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mailctl profile add|use|list|delete")
		os.Exit(1)
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("profile add", flag.ExitOnError)
		name := fs.String("name", "", "Profile name (required)")
		apiURL := fs.String("api", mailctl.DefaultAPIURL, "mailpanel API base URL")
		apiKey := fs.String("key", "", "API key (required)")
		fs.Parse(args[1:])

		if *name == "" || *apiKey == "" {
			fmt.Fprintln(os.Stderr, "Error: -name and -key are required")
			os.Exit(1)
		}
		p, err := mailctl.SaveProfile(mailctl.Profile{Name: *name, APIURL: *apiURL, APIKey: *apiKey})
		if err != nil {
			fail(err)
		}
		fmt.Printf("Profile %q saved (%s)\n", p.Name, p.APIURL)

	case "use":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: mailctl profile use <name>")
			os.Exit(1)
		}
		if err := mailctl.SetActive(args[1]); err != nil {
			fail(err)
		}
		fmt.Printf("Active profile: %s\n", args[1])

	case "list":
		profiles, err := mailctl.ListProfiles()
		if err != nil {
			fail(err)
		}
		active := mailctl.GetActive()
		for _, p := range profiles {
			marker := " "
			if p.Name == active {
				marker = "*"
			}
			fmt.Printf("%s %s\t%s\n", marker, p.Name, p.APIURL)
		}

	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: mailctl profile delete <name>")
			os.Exit(1)
		}
		if err := mailctl.DeleteProfile(args[1]); err != nil {
			fail(err)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown profile command: %s\n", args[0])
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  mailctl seed -f <seed.yaml>
  mailctl pw [-s scheme] [-p password] [-t encoded] [-l]
  mailctl dkim refresh [-api URL] [-all] <domain-id>
  mailctl profile add -name <name> -key <api-key> [-api URL]
  mailctl profile use|delete <name>
  mailctl profile list

Commands:
  seed          Create domains, mailboxes and aliases from a YAML definition
  pw            Encode a password, or verify one against an encoded credential
  dkim refresh  Re-check the DKIM record of a domain
  profile       Manage saved API endpoints (~/.config/mailpanel)

Environment:
  MAILPANEL_API_URL  API base URL, overrides the active profile
  MAILPANEL_API_KEY  API key, overrides the active profile
  PASSWORD_SCHEME    Default scheme for pw (default: SSHA512)`)
}
