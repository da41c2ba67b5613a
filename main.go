package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"LocalNotebook/internal/config"
	"LocalNotebook/internal/export"
	"LocalNotebook/internal/notebook"
	"LocalNotebook/internal/ui"
)

const usage = `usage:
  localnotebook                       open the notebook app
  localnotebook export -in FILE -out FILE.pdf [-zoom N]
  localnotebook config                print the effective configuration`

func main() {
	configPath := os.Getenv("NOTEBOOK_CONFIG")
	if configPath == "" {
		configPath = "notebook.yaml"
	}
	cfg, err := config.Load(configPath, ".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.SetupLogging()

	args := os.Args[1:]
	if len(args) == 0 {
		if err := ui.RunApp(cfg); err != nil {
			log.Fatalf("App failed: %v", err)
		}
		return
	}

	switch args[0] {
	case "export":
		err = runExport(args[1:])
	case "config":
		err = yaml.NewEncoder(os.Stdout).Encode(cfg)
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// runExport renders a notebook saved as JSON to a PDF file.
func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var (
		in   = fs.String("in", "", "notebook JSON file")
		out  = fs.String("out", "", "PDF file to write")
		zoom = fs.Float64("zoom", export.DefaultZoom, "render zoom in percent")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return errors.New("export needs -in and -out")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return errors.Wrapf(err, "read %s", *in)
	}
	nb, err := notebook.FromJSON(data)
	if err != nil {
		return errors.Wrapf(err, "parse %s", *in)
	}
	return export.PDFFile(*out, nb, nil, *zoom)
}
