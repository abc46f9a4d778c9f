package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"example.com/chandb/internal/common"
	"example.com/chandb/internal/config"
	"example.com/chandb/internal/diag"
	"example.com/chandb/internal/export"
	"example.com/chandb/internal/model"
	"example.com/chandb/internal/report"
	"example.com/chandb/internal/sdb"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "info":
		infoCmd(os.Args[2:])
	case "check":
		checkCmd(os.Args[2:])
	case "apply":
		applyCmd(os.Args[2:])
	case "export":
		exportCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "version":
		fmt.Printf("chandbctl %s (built %s)\n", version, buildDate)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`chandbctl - SDB channel database tool

Commands:
  info    --in db.xml [--config chandb.yaml]
  check   --in db.xml [--out check.json]
  apply   --in db.xml --plan plan.yaml --out edited.xml
  export  --in db.xml --out channels.xlsx
  report  --in db.xml --out report.pdf [--check check.json]
  version`)
}

// loadConfig reads the optional tool configuration and routes the package
// logger into a rotating file when one is configured.
func loadConfig(path string) config.ToolConfig {
	if path == "" {
		return config.ToolConfig{}
	}
	cfg, err := config.LoadToolConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(2)
	}
	if cfg.Logs.Directory != "" {
		common.SetLogOutput(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.Logs.Directory, "chandbctl.log"),
			MaxSize:    cfg.Logs.MaxSizeMB,
			MaxAge:     cfg.Logs.MaxAgeDays,
			MaxBackups: cfg.Logs.MaxBackups,
			Compress:   cfg.Logs.Compress,
		})
	}
	return cfg
}

// resolveOutput places relative output paths under the configured output
// directory.
func resolveOutput(cfg config.ToolConfig, path string) string {
	if path == "" || cfg.OutputDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.OutputDir, path)
}

func loadDatabase(path string) (*sdb.Document, *model.DataRoot) {
	metrics := common.NewMetrics()
	metrics.Start()
	root := model.NewDataRoot()
	doc, err := sdb.Load(path, root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(2)
	}
	if stat, err := os.Stat(path); err == nil {
		metrics.AddBytes(stat.Size())
	}
	for _, list := range root.Lists {
		metrics.AddList(len(list.Channels))
	}
	metrics.Stop()
	snap := metrics.Snapshot()
	common.Logf("loaded %s: %s %s, %d lists, %d channels in %s (%.0f B/s)",
		path, doc.Dialect(), doc.Version(), snap.Lists, snap.Channels,
		snap.Duration.Round(time.Millisecond), snap.ThroughputBytesPerSecond())
	return doc, root
}

func infoCmd(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	in := fs.String("in", "", "channel database file")
	cfgPath := fs.String("config", "", "tool configuration YAML")
	fs.Parse(args)
	loadConfig(*cfgPath)
	if *in == "" {
		fmt.Fprintln(os.Stderr, "info: --in is required")
		os.Exit(1)
	}

	doc, root := loadDatabase(*in)
	fmt.Printf("File:     %s\n", *in)
	fmt.Printf("Dialect:  %s\n", doc.Dialect())
	fmt.Printf("Version:  %s\n", doc.Version())
	fmt.Printf("Checksum: %s\n", doc.Checksum())
	fmt.Printf("Newlines: %s\n", newlineLabel(doc.NewlineStyle()))
	fmt.Printf("Channels: %d\n\n", root.ChannelCount())

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for _, list := range root.Lists {
		fmt.Fprintf(w, "%s\t(%d channels)\t\t\t\t\n", list.Caption, len(list.Channels))
		fmt.Fprintln(w, "  No\tName\tSignal\tSID\tONID/TSID\tFlags")
		for _, ch := range list.Channels {
			row := channelRow(ch)
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n",
				row[0], row[1], row[2], row[3], row[4], row[5])
		}
		fmt.Fprintln(w, "\t\t\t\t\t")
	}
	w.Flush()
}

// channelRow formats one channel for the info table.
func channelRow(ch *model.Channel) [6]string {
	no := "-"
	if !ch.IsDeleted && ch.NewProgramNr >= 0 {
		no = strconv.Itoa(ch.NewProgramNr)
	}
	flags := ""
	if ch.IsDeleted {
		flags += "D"
	}
	if ch.Encrypted {
		flags += "E"
	}
	if ch.Hidden {
		flags += "H"
	}
	if ch.Favorites != 0 {
		flags += "F" + strconv.Itoa(int(ch.Favorites))
	}
	if flags == "" {
		flags = "-"
	}
	return [6]string{
		no, ch.Name, ch.Signal.String(), strconv.Itoa(ch.ServiceID),
		fmt.Sprintf("%d/%d", ch.OriginalNetworkID, ch.TransportStreamID), flags,
	}
}

func newlineLabel(style string) string {
	if style == "\r\n" {
		return "CRLF"
	}
	return "LF"
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	in := fs.String("in", "", "channel database file")
	out := fs.String("out", "", "output check report JSON")
	cfgPath := fs.String("config", "", "tool configuration YAML")
	fs.Parse(args)
	cfg := loadConfig(*cfgPath)
	if *in == "" {
		fmt.Fprintln(os.Stderr, "check: --in is required")
		os.Exit(1)
	}

	root := model.NewDataRoot()
	var rep diag.Report
	if _, err := sdb.Load(*in, root); err != nil {
		rep = diag.LoadFailure(*in, err)
	} else {
		rep = diag.NewReport(diag.Collect(root, *in))
	}

	if *out != "" {
		if err := report.SaveCheckJSON(rep, resolveOutput(cfg, *out)); err != nil {
			fmt.Fprintln(os.Stderr, "write report:", err)
			os.Exit(2)
		}
	}
	fmt.Printf("%d findings (%d errors, %d warnings)\n",
		rep.Summary.Total, rep.Summary.Errors, rep.Summary.Warnings)
	if !rep.Summary.Pass {
		os.Exit(1)
	}
}

func applyCmd(args []string) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	in := fs.String("in", "", "channel database file")
	planPath := fs.String("plan", "", "edit plan YAML")
	out := fs.String("out", "", "output database file")
	cfgPath := fs.String("config", "", "tool configuration YAML")
	fs.Parse(args)
	cfg := loadConfig(*cfgPath)
	if *in == "" || *planPath == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "apply: --in, --plan and --out are required")
		os.Exit(1)
	}

	plan, err := config.LoadPlan(*planPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load plan:", err)
		os.Exit(2)
	}

	doc, root := loadDatabase(*in)
	applied, err := plan.Apply(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "apply plan:", err)
		os.Exit(1)
	}

	dst := resolveOutput(cfg, *out)
	if err := doc.Save(dst); err != nil {
		fmt.Fprintln(os.Stderr, "save:", err)
		os.Exit(2)
	}
	appendAudit(cfg, *planPath, *in, dst, applied)
	fmt.Printf("applied %d edits, wrote %s\n", applied, dst)
}

// appendAudit records the applied plan in the JSONL audit log when one is
// configured. Audit failures are logged, not fatal: the edited file is
// already on disk.
func appendAudit(cfg config.ToolConfig, plan, in, out string, applied int) {
	if cfg.AuditLog == "" {
		return
	}
	before, _, err := common.Sha256OfFile(in)
	if err != nil {
		common.Logf("audit: hash input: %v", err)
	}
	after, _, err := common.Sha256OfFile(out)
	if err != nil {
		common.Logf("audit: hash output: %v", err)
	}
	entry := common.EditEntry{
		Plan: plan, Input: in, Output: out, Edits: applied,
		BeforeSha256: before, AfterSha256: after,
	}
	if err := common.NewEditLog(cfg.AuditLog).Append(entry); err != nil {
		common.Logf("audit: append: %v", err)
	}
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	in := fs.String("in", "", "channel database file")
	out := fs.String("out", "channels.xlsx", "output XLSX file")
	cfgPath := fs.String("config", "", "tool configuration YAML")
	fs.Parse(args)
	cfg := loadConfig(*cfgPath)
	if *in == "" {
		fmt.Fprintln(os.Stderr, "export: --in is required")
		os.Exit(1)
	}

	_, root := loadDatabase(*in)
	dst := resolveOutput(cfg, *out)
	if err := export.SaveXLSX(root, dst); err != nil {
		fmt.Fprintln(os.Stderr, "export:", err)
		os.Exit(2)
	}
	fmt.Println("wrote", dst)
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "channel database file")
	out := fs.String("out", "report.pdf", "output PDF file")
	checkPath := fs.String("check", "", "existing check report JSON to include")
	cfgPath := fs.String("config", "", "tool configuration YAML")
	fs.Parse(args)
	cfg := loadConfig(*cfgPath)
	if *in == "" {
		fmt.Fprintln(os.Stderr, "report: --in is required")
		os.Exit(1)
	}

	doc, root := loadDatabase(*in)
	var rep diag.Report
	if *checkPath != "" {
		var err error
		rep, err = report.LoadCheckJSON(*checkPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load check report:", err)
			os.Exit(2)
		}
	} else {
		rep = diag.NewReport(diag.Collect(root, *in))
	}

	meta := report.Meta{
		File:     *in,
		Dialect:  doc.Dialect().String(),
		Version:  doc.Version(),
		Checksum: doc.Checksum(),
	}
	dst := resolveOutput(cfg, *out)
	if err := report.SaveSummaryPDF(meta, root, rep, dst); err != nil {
		fmt.Fprintln(os.Stderr, "write pdf:", err)
		os.Exit(2)
	}
	fmt.Println("wrote", dst)
}
