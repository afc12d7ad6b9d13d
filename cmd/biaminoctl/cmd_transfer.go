package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/transfer"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write every project and comment to a JSON document",
	Long: `Write the export document to file, or to biamino-export-YYYY-MM-DD.json in
the current directory when no file is given. Use "-" for stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace projects and comments from an export document",
	Long: `Replace the stored collections with those present in the document. A
collection missing from the document is left untouched. A malformed
document changes nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	target := ""
	if len(args) == 1 {
		target = args[0]
	}
	path, doc, err := exportTo(e.ctx, transfer.NewService(e.stores.Store), target)
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d projects and %d comments to %s\n",
			len(doc.Projects), len(doc.Comments), path)
	}
	return nil
}

// exportTo writes the document to target and returns the path it used.
func exportTo(ctx context.Context, svc *transfer.Service, target string) (string, transfer.Document, error) {
	if target == "-" {
		doc, err := svc.WriteExport(ctx, os.Stdout)
		return target, doc, err
	}

	if target == "" {
		target = transfer.FileName(domain.Now())
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", transfer.Document{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	f, err := os.Create(target)
	if err != nil {
		return "", transfer.Document{}, fmt.Errorf("create export file: %w", err)
	}
	doc, err := svc.WriteExport(ctx, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close export file: %w", cerr)
	}
	return target, doc, err
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := importFrom(e.ctx, transfer.NewService(e.stores.Store), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), describeImport(res))
	return nil
}

func importFrom(ctx context.Context, svc *transfer.Service, path string) (transfer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return transfer.Result{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	res, err := svc.Import(ctx, f)
	if err != nil {
		return res, fmt.Errorf("import %s: %w", path, err)
	}
	return res, nil
}

func describeImport(res transfer.Result) string {
	part := func(name string, replaced bool, n int) string {
		if !replaced {
			return name + " unchanged"
		}
		return fmt.Sprintf("%d %s", n, name)
	}
	return fmt.Sprintf("imported %s, %s",
		part("projects", res.ProjectsReplaced, res.Projects),
		part("comments", res.CommentsReplaced, res.Comments))
}
