// Package diag inspects a loaded channel database and produces a report
// of findings: conditions that load cleanly but will surprise an editor,
// like duplicate program numbers or services pointing at no transponder.
package diag

import (
	"fmt"
	"time"

	"example.com/chandb/internal/model"
)

type Severity string

const (
	ERROR Severity = "ERROR"
	WARN  Severity = "WARN"
	INFO  Severity = "INFO"
)

// Finding is one diagnostic hit, addressable down to the record.
type Finding struct {
	Ts       time.Time `json:"ts"`
	File     string    `json:"file"`
	List     string    `json:"list,omitempty"`
	RecordID int       `json:"recordId,omitempty"`
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// Report is the check result: a summary plus the individual findings.
type Report struct {
	Summary struct {
		Total    int  `json:"total"`
		Errors   int  `json:"errors"`
		Warnings int  `json:"warnings"`
		Pass     bool `json:"pass"`
	} `json:"summary"`
	Findings []Finding `json:"findings,omitempty"`
}

// NewReport wraps findings and fills in the summary. Pass means no
// error-severity findings.
func NewReport(findings []Finding) Report {
	var rep Report
	rep.Findings = findings
	rep.Summary.Total = len(findings)
	for _, f := range findings {
		switch f.Severity {
		case ERROR:
			rep.Summary.Errors++
		case WARN:
			rep.Summary.Warnings++
		}
	}
	rep.Summary.Pass = rep.Summary.Errors == 0
	return rep
}

// Collect runs every built-in check against the loaded data root.
func Collect(root *model.DataRoot, file string) []Finding {
	now := time.Now().UTC()
	var findings []Finding
	add := func(list string, recID int, code string, sev Severity, msg string) {
		findings = append(findings, Finding{
			Ts: now, File: file, List: list, RecordID: recID,
			Code: code, Severity: sev, Message: msg,
		})
	}

	for _, list := range root.Lists {
		byNumber := make(map[int]*model.Channel)
		for _, ch := range list.Channels {
			if ch.IsDeleted {
				continue
			}
			if prev, ok := byNumber[ch.NewProgramNr]; ok {
				add(list.Kind.String(), ch.RecordID, "duplicate-program-number", WARN,
					fmt.Sprintf("program number %d also used by record %d (%q)",
						ch.NewProgramNr, prev.RecordID, prev.Name))
			} else {
				byNumber[ch.NewProgramNr] = ch
			}
			if ch.Transponder == nil {
				add(list.Kind.String(), ch.RecordID, "dangling-transponder", WARN,
					fmt.Sprintf("service %q references no known transponder", ch.Name))
			}
			if ch.Name == "" {
				add(list.Kind.String(), ch.RecordID, "unnamed-service", INFO,
					fmt.Sprintf("service %d has an empty name", ch.ServiceID))
			}
			if ch.Signal == model.SignalUnknown {
				add(list.Kind.String(), ch.RecordID, "unknown-service-type", INFO,
					fmt.Sprintf("service type %d is neither TV nor radio", ch.ServiceType))
			}
		}
	}
	return findings
}

// LoadFailure converts a load error into a single-error report so the
// check command always emits a report document.
func LoadFailure(file string, err error) Report {
	return NewReport([]Finding{{
		Ts:       time.Now().UTC(),
		File:     file,
		Code:     "load-failed",
		Severity: ERROR,
		Message:  err.Error(),
	}})
}
