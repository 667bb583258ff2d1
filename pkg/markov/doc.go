/*
Package markov provides a small, in-memory toolkit for building first-order
Markov (bigram) language models from plain text and sampling new word
sequences from them.

Training runs in three stages: a Tokenizer turns raw text into lowercase
alphabetic tokens, the adjacent pairs are counted into a TransitionTable, and
the table is normalized into an immutable Model. Generation draws each next
word from the current word's distribution by cumulative inversion of a single
uniform random number, so a seeded random source replays identically.

A Model is never mutated after construction and may be shared freely.
*/
package markov
