package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lexfrei/go-unifi-controller/api/controller"
	"github.com/lexfrei/go-unifi-controller/internal/config"
	"github.com/lexfrei/go-unifi-controller/observability"
)

var (
	configPath = flag.String("config", "", "path to YAML config (or use UNIFI_CONFIG env)")
	verbose    = flag.Bool("verbose", false, "Verbose output with JSON samples")
)

type TestResult struct {
	Endpoint    string
	Success     bool
	Error       string
	Records     int
	Duration    time.Duration
	JSONSample  string
	Fields      []string // Union of top-level fields over all records
	MixedFields []string // Fields whose JSON type differs between records
	Sparse      []string // Fields missing from some records
}

func main() {
	flag.Parse()

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level, _ := cfg.Level()
	logger := observability.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	fmt.Println("🧪 Testing go-unifi-controller against reality...")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	ctx := context.Background()

	fmt.Printf("📡 Logging in to %s:%d as %s...\n", cfg.Host, cfg.Port, cfg.Username)

	client, err := controller.NewWithConfig(ctx, cfg.ClientConfig(logger, nil))
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	fmt.Printf("   Base URL: %s\n", client.BaseURL())
	fmt.Println()

	results := []TestResult{
		testRecords(ctx, "GetAPs (api/stat/device)", client.GetAPs),
		testRecords(ctx, "GetClients (api/stat/sta)", client.GetClients),
		testRecords(ctx, "GetWLANConf (api/list/wlanconf)", client.GetWLANConf),
	}

	// Print summary
	fmt.Println()
	fmt.Println("📊 Test Summary")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	failed := 0
	for _, result := range results {
		status := "✅"
		if !result.Success {
			status = "❌"
			failed++
		} else if len(result.MixedFields) > 0 {
			status = "⚠️"
		}

		fmt.Printf("%s %s (%d records, %v)\n", status, result.Endpoint, result.Records, result.Duration)

		if result.Error != "" {
			fmt.Printf("   Error: %s\n", result.Error)
		}

		if len(result.Fields) > 0 {
			fmt.Printf("   Fields: %d\n", len(result.Fields))
		}

		if len(result.Sparse) > 0 {
			fmt.Printf("   Fields missing from some records: %s\n", strings.Join(result.Sparse, ", "))
		}

		if len(result.MixedFields) > 0 {
			fmt.Printf("   ⚠️  Fields with mixed JSON types: %d\n", len(result.MixedFields))
			for _, field := range result.MixedFields {
				fmt.Printf("      - %s\n", field)
			}
		}

		if *verbose && result.JSONSample != "" {
			fmt.Printf("   JSON Sample:\n%s\n", indentJSON(result.JSONSample, "      "))
		}

		fmt.Println()
	}

	fmt.Println("=" + strings.Repeat("=", 60))
	if failed == 0 {
		fmt.Println("✅ All endpoints answered.")
	} else {
		fmt.Printf("❌ %d endpoint(s) failed\n", failed)
		os.Exit(1)
	}
}

func testRecords(ctx context.Context, endpoint string, list func(context.Context) ([]controller.Record, error)) TestResult {
	start := time.Now()
	result := TestResult{Endpoint: endpoint}

	records, err := list(ctx)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Records = len(records)
	result.Fields, result.Sparse, result.MixedFields = inventory(records)

	if *verbose && len(records) > 0 {
		data, _ := json.MarshalIndent(records[0], "", "  ")
		result.JSONSample = string(data)
	}

	return result
}

// inventory lists the top-level fields of records, the fields that are
// absent from some records and the fields seen with more than one JSON type.
func inventory(records []controller.Record) ([]string, []string, []string) {
	seen := make(map[string]int)
	kinds := make(map[string]map[string]bool)

	for _, record := range records {
		for key, value := range record {
			seen[key]++
			if kinds[key] == nil {
				kinds[key] = make(map[string]bool)
			}
			kinds[key][jsonKind(value)] = true
		}
	}

	var fields, sparse, mixed []string
	for key, count := range seen {
		fields = append(fields, key)
		if count < len(records) {
			sparse = append(sparse, key)
		}
		if len(kinds[key]) > 1 {
			names := make([]string, 0, len(kinds[key]))
			for kind := range kinds[key] {
				names = append(names, kind)
			}
			sort.Strings(names)
			mixed = append(mixed, fmt.Sprintf("%s (%s)", key, strings.Join(names, "|")))
		}
	}

	sort.Strings(fields)
	sort.Strings(sparse)
	sort.Strings(mixed)

	return fields, sparse, mixed
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func indentJSON(jsonStr, indent string) string {
	lines := strings.Split(jsonStr, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
