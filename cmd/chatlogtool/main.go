// chatlogtool inspects and prunes the chat request log database without
// going through the server. Dry-run by default.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

func main() {
	log.SetFlags(0)

	dbPath := flag.String("db", ".config/chat_logs.db", "path to SQLite DB (chat_logs.db)")
	retained := flag.Int("retained", 30, "days of logs to keep when pruning")
	apply := flag.Bool("apply", false, "apply changes (default: dry-run)")
	limit := flag.Int("limit", 10, "sample rows to print in dry-run")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("stat db: %v", err)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := printStats(db); err != nil {
		log.Fatalf("stats: %v", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -*retained)
	expired, err := countExpired(db, cutoff)
	if err != nil {
		log.Fatalf("count expired: %v", err)
	}
	log.Printf("expired rows (older than %s): %d", cutoff.Format("2006-01-02"), expired)

	if !*apply {
		if *limit > 0 {
			if err := printSamples(db, *limit); err != nil {
				log.Fatalf("print samples: %v", err)
			}
		}
		log.Printf("dry-run complete (use --apply to prune)")
		return
	}

	if expired == 0 {
		log.Printf("nothing to prune")
		return
	}

	res, err := db.Exec("DELETE FROM chat_logs WHERE created_at < ?", cutoff)
	if err != nil {
		log.Fatalf("prune: %v", err)
	}
	deleted, _ := res.RowsAffected()
	if _, err := db.Exec("VACUUM"); err != nil {
		log.Printf("vacuum failed: %v", err)
	}
	log.Printf("pruned %d rows", deleted)
}

func printStats(db *sql.DB) error {
	var total, rejected int
	if err := db.QueryRow("SELECT COUNT(*) FROM chat_logs").Scan(&total); err != nil {
		return err
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM chat_logs WHERE verdict = 'rejected'").Scan(&rejected); err != nil {
		return err
	}

	var oldest, newest sql.NullString
	err := db.QueryRow("SELECT MIN(created_at), MAX(created_at) FROM chat_logs").Scan(&oldest, &newest)
	if err != nil {
		return err
	}

	log.Printf("total rows: %d (rejected: %d)", total, rejected)
	if oldest.Valid {
		log.Printf("range: %s .. %s", oldest.String, newest.String)
	}
	return nil
}

func countExpired(db *sql.DB, cutoff time.Time) (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM chat_logs WHERE created_at < ?", cutoff).Scan(&n)
	return n, err
}

func printSamples(db *sql.DB, limit int) error {
	rows, err := db.Query(`
		SELECT created_at, identity, conversation_id, verdict, COALESCE(reason, ''), http_status
		FROM chat_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return err
	}
	defer rows.Close()

	log.Printf("most recent %d rows:", limit)
	for rows.Next() {
		var createdAt, identity, conversationID, verdict, reason string
		var status int
		if err := rows.Scan(&createdAt, &identity, &conversationID, &verdict, &reason, &status); err != nil {
			return err
		}
		line := fmt.Sprintf("  %s %s %s %s %d", createdAt, identity, conversationID, verdict, status)
		if reason != "" {
			line += " " + reason
		}
		log.Print(line)
	}
	return rows.Err()
}
