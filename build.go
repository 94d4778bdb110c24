//go:build ignore

// build.go - jpxcli build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, tickers, ingest, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module  = "jpxcli"
	distDir = "dist"
)

// commands lists the buildable commands under ./cmd
var commands = []string{"tickers", "ingest"}

var (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
	Version string
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	version := flag.String("version", "", "version stamped into the binaries (defaults to git describe)")
	flag.Parse()

	ctx := &BuildContext{
		Verbose: *verbose,
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
		Version: *version,
	}
	if ctx.Version == "" {
		ctx.Version = gitOutput("describe", "--tags", "--always", "--dirty")
	}

	fmt.Println(colorCyan + "=== jpxcli build ===" + colorReset)
	start := time.Now()

	switch *target {
	case "all":
		for _, name := range commands {
			buildCommand(name, ctx)
		}
	case "tickers", "ingest":
		buildCommand(*target, ctx)
	case "test":
		runTests(ctx.Verbose)
	case "clean":
		clean()
	case "release":
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(start).Round(time.Millisecond)))
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func buildCommand(name string, ctx *BuildContext) {
	printInfo(fmt.Sprintf("Building %s (%s/%s)...", name, ctx.GOOS, ctx.GOARCH))

	exeName := name
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}
	outputPath := filepath.Join(distDir, ctx.GOOS+"_"+ctx.GOARCH, exeName)

	pkg := module + "/pkg/contracts"
	ldflags := strings.Join([]string{
		"-s -w",
		fmt.Sprintf("-X %s.Version=%s", pkg, strings.TrimPrefix(ctx.Version, "v")),
		fmt.Sprintf("-X %s.BuildTime=%s", pkg, time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("-X %s.GitCommit=%s", pkg, gitOutput("rev-parse", "--short", "HEAD")),
	}, " ")

	args := []string{"build", "-trimpath", "-ldflags", ldflags, "-o", outputPath, "./cmd/" + name}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
	}

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH, "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", outputPath, float64(info.Size())/1024/1024))
	}
}

// buildRelease cross-compiles every command for the platforms the batch
// jobs are scheduled on.
func buildRelease(ctx *BuildContext) {
	for _, platform := range [][2]string{{"linux", "amd64"}, {"linux", "arm64"}, {"windows", "amd64"}, {"darwin", "arm64"}} {
		c := *ctx
		c.GOOS, c.GOARCH = platform[0], platform[1]
		for _, name := range commands {
			buildCommand(name, &c)
		}
	}
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean %s: %v", distDir, err))
		os.Exit(1)
	}
	printSuccess("Build artifacts cleaned")
}

func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=TARGET [-v] [-version=X.Y.Z]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all      Build tickers and ingest for the host platform")
	fmt.Println("  tickers  Build the listing extractor")
	fmt.Println("  ingest   Build the price ingester")
	fmt.Println("  test     Run go test -race ./...")
	fmt.Println("  clean    Remove dist/")
	fmt.Println("  release  Cross-compile every command")
}
