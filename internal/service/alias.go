package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/exmail-sync/internal/errs"
)

// ImportStats summarizes an alias import.
type ImportStats struct {
	Lines   int
	Updated int
	Failed  int
}

// AliasImporter assigns secondary addresses to members from a tab-separated file.
type AliasImporter struct {
	api DirectoryAPI
	log *zap.Logger
}

// NewAliasImporter constructs an AliasImporter.
func NewAliasImporter(api DirectoryAPI, log *zap.Logger) *AliasImporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &AliasImporter{api: api, log: log}
}

// ImportFile reads lines of the form "userid<TAB>anything<TAB>alias" and sets
// alias as the only secondary address of userid@domain. Bad lines and failed
// updates are logged and counted; read errors and authentication failures stop
// the import.
func (a *AliasImporter) ImportFile(ctx context.Context, r io.Reader, domain string) (ImportStats, error) {
	domain = strings.TrimPrefix(strings.TrimSpace(domain), "@")
	if domain == "" {
		return ImportStats{}, errors.New("alias import: empty domain")
	}

	var st ImportStats
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		st.Lines++

		userID, alias, err := parseAliasLine(line)
		if err != nil {
			st.Failed++
			a.log.Warn("skip alias line", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		address := userID + "@" + domain
		err = a.api.UpdateMember(ctx, address, map[string]any{"slaves": []string{alias}})
		if err != nil {
			if errors.Is(err, errs.ErrAuth) {
				return st, err
			}
			st.Failed++
			a.log.Error("set alias failed",
				append(remoteFields(err), zap.String("mailbox", address), zap.String("alias", alias))...)
			continue
		}
		st.Updated++
		a.log.Info("alias set", zap.String("mailbox", address), zap.String("alias", alias))
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("alias import: read: %w", err)
	}
	return st, nil
}

func parseAliasLine(line string) (userID, alias string, err error) {
	parts := strings.Split(line, "\t")
	if len(parts) != 3 {
		return "", "", &errs.ParseError{Entity: "alias", Field: "line", Reason: fmt.Sprintf("want 3 tab-separated fields, got %d", len(parts))}
	}
	userID, alias = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[2])
	if userID == "" {
		return "", "", &errs.ParseError{Entity: "alias", Field: "userid", Reason: "empty"}
	}
	if alias == "" {
		return "", "", &errs.ParseError{Entity: "alias", Field: "alias", Reason: "empty"}
	}
	return userID, alias, nil
}
