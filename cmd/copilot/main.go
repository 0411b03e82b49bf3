// Command copilot is a terminal client for the maintenance copilot, for
// operators who live in a shell rather than the dashboard.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/observability"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/adapters/suites"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/app"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/domain"
	"github.com/cjpark-sapcsa/AIdesignwin-contosohotels/internal/shared"
)

var (
	endpoint = flag.String("endpoint", "", "Suites API endpoint (defaults to API_ENDPOINT)")
	prefix   = flag.Bool("prefix", false, "append /api to the endpoint (defaults to API_PATH_PREFIX)")
	insecure = flag.Bool("insecure", false, "skip TLS verification (defaults to API_INSECURE_SKIP_VERIFY)")
)

func main() {
	flag.Parse()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, "copilot")

	raw, usePrefix, skipTLS := cfg.APIEndpoint, cfg.APIPathPrefix, cfg.InsecureTLS
	if *endpoint != "" {
		raw = *endpoint
	}
	if *prefix {
		usePrefix = true
	}
	if *insecure {
		skipTLS = true
	}

	base, err := shared.ResolveEndpoint(raw, usePrefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, domain.UserMessage(err))
		fmt.Fprintln(os.Stderr, "Set API_ENDPOINT or pass -endpoint.")
		os.Exit(1)
	}

	client := suites.New(base, suites.Options{
		Timeout:        cfg.APITimeout,
		CopilotTimeout: cfg.CopilotTimeout,
		RPS:            cfg.APIRPS,
		InsecureTLS:    skipTLS,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nShutting down...")
		cancel()
		os.Exit(0)
	}()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(boldGreen("Contoso Suites Maintenance Copilot"))
	fmt.Printf("Endpoint: %s\n", boldCyan(base))
	fmt.Println("Type your message and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	var transcript []domain.ChatMessage
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			break
		}

		transcript = append(transcript, domain.ChatMessage{
			Role: domain.RoleUser, Content: input, At: time.Now().UTC(),
		})

		fmt.Print(boldCyan("Copilot: "))
		reply, err := client.CopilotChat(ctx, input)
		if err != nil {
			reply = domain.UserMessage(err)
			log.Debug().Err(err).Msg("copilot call failed")
		} else {
			reply = app.Format(reply)
		}

		fmt.Println(reply)
		fmt.Println()
		transcript = append(transcript, domain.ChatMessage{
			Role: domain.RoleAssistant, Content: reply, At: time.Now().UTC(),
		})
	}

	if len(transcript) > 0 {
		fmt.Printf("%d message(s) this session.\n", len(transcript))
	}
}
