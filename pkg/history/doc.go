/*
Package history keeps a SQLite log of text generation runs: which seed phrase
was used, how many words were requested, what came out, and whether the run
failed. It also maintains per-seed-word counters for quick summaries.

Only runs are recorded. Trained models are rebuilt from their corpus and are
never written to the database.
*/
package history
