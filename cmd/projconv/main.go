package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/mapproj/internal/geo"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in"     description:"Input GeoJSON file path. Reads from stdin if empty"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	From   string `short:"s" long:"from"   description:"Projection of the input coordinates" default:"EPSG:4326"`
	To     string `short:"t" long:"to"     description:"Projection of the output coordinates" default:"EPSG:3857"`
	Pretty bool   `short:"p" long:"pretty" description:"Indent JSON output"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	outputData, err := convert(inputData, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting GeoJSON: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %s -> %s to %s (format: %s)\n", opts.From, opts.To, opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}

// convert re-projects any GeoJSON object and encodes it in the requested format.
func convert(input []byte, opts Options) ([]byte, error) {
	data, err := geo.Reproject(input, opts.From, opts.To)
	if err != nil {
		return nil, err
	}

	switch {
	case opts.Format == "yaml":
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return yaml.Marshal(doc)

	case opts.Pretty:
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	return data, nil
}
