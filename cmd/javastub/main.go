package main

import (
	"fmt"
	"os"
	"strings"
)

const version = "0.0.1-dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		printUsage()
		return 1
	}

	switch os.Args[1] {
	case "compile":
		return runCompile(os.Args[2:])
	case "--version", "-v":
		fmt.Println("javastub", version)
		return 0
	case "--help", "-h":
		printUsage()
		return 0
	default:
		if strings.HasPrefix(os.Args[1], "-") {
			return runCompile(os.Args[1:])
		}
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println("javastub - partial compilation of a single method by stub synthesis")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  javastub compile [flags]     Compile one target method")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  --version, -v          Print version and exit")
	fmt.Println("  --help, -h             Print this help message")
	fmt.Println()
	fmt.Println("Compile Flags:")
	fmt.Println("  --source-root <path>   Source root containing the target (required)")
	fmt.Println("  --class <binaryName>   Target class binary name, e.g. com/acme/Foo or com/acme/Foo$Inner")
	fmt.Println("  --method <name>        Target method name")
	fmt.Println("  --descriptor <desc>    Target method descriptor, e.g. (Ljava/lang/String;)V")
	fmt.Println("  --config <path>        Path to javastub.config.json")
	fmt.Println("  --work-dir <path>      Absolute working directory (slice/gen/classes live here)")
	fmt.Println("  --extra-classpath <p>  Additional classpath entry (repeatable)")
	fmt.Println("  --timeout <sec>        Per-method wall-clock timeout")
	fmt.Println("  --iteration-budget <n> Maximum repair iterations")
	fmt.Println("  --ambiguity <policy>   strict | lenient")
	fmt.Println("  --dep-mode <mode>      none | provided | fetched")
	fmt.Println("  --quiet                Suppress info/warning diagnostics")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  javastub compile --source-root ./slice --class com/acme/Foo --method bar --descriptor '()V' --work-dir /tmp/run")
	fmt.Println()
}
