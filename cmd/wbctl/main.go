package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"whiteboard/internal/auth"
	"whiteboard/internal/config"
	"whiteboard/internal/services"

	"github.com/docopt/docopt-go"
	"github.com/olekukonko/tablewriter"
)

const WbctlVersion = "0.1.0"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `Whiteboard control.

The signing key is read from JWT_SECRET. Tokens live for JWT_EXPIRES_IN
unless --ttl is given.

Usage:
    wbctl token --user=<user_id> [--name=<name>] [--ttl=<ttl>]
    wbctl stats [--url=<url>]
    wbctl -h | --help
    wbctl --version

Options:
    -h --help          Show this screen.
    --version          Show version.
    --user=<user_id>   User id placed in the token.
    --name=<name>      Display name placed in the token.
    --ttl=<ttl>        Token lifetime.
    --url=<url>        Server base url [default: http://localhost:8000].`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], WbctlVersion)
	if err != nil {
		panic(err)
	}

	if token, _ := opts.Bool("token"); token {
		issueToken(opts)
	} else if stats, _ := opts.Bool("stats"); stats {
		printStats(opts)
	}
}

func issueToken(opts docopt.Opts) {
	cfg, err := config.LoadJWT()
	if err != nil {
		Err.Fatalf("%v", err)
	}

	userID, _ := opts.String("--user")
	name, _ := opts.String("--name")
	ttl, err := tokenTTL(opts, cfg.ExpiresIn)
	if err != nil {
		Err.Fatalf("Invalid --ttl: %v", err)
	}

	token, err := auth.NewService([]byte(cfg.Secret)).IssueToken(userID, name, ttl)
	if err != nil {
		Err.Fatalf("Could not sign token: %v", err)
	}
	Out.Println(token)
}

// tokenTTL returns --ttl when given, else the configured lifetime.
func tokenTTL(opts docopt.Opts, fallback time.Duration) (time.Duration, error) {
	ttlStr, err := opts.String("--ttl")
	if err != nil || ttlStr == "" {
		return fallback, nil
	}
	return time.ParseDuration(ttlStr)
}

func printStats(opts docopt.Opts) {
	url, _ := opts.String("--url")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url + "/healthz")
	if err != nil {
		Err.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		Err.Fatalf("Unexpected status: %s", resp.Status)
	}

	var stats services.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		Err.Fatalf("Invalid response: %v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rooms", "Connections", "Scenes"})
	table.Append([]string{
		strconv.Itoa(stats.Rooms),
		strconv.Itoa(stats.Connections),
		strconv.Itoa(stats.Scenes),
	})
	table.Render()
}
