// Package memory holds the durable conversation state: role-tagged messages,
// append-only transcripts and the registry snapshot document.
//
// Persistence model:
//   - One JSON document holds every assistant together with its threads.
//   - Every save rewrites the whole document (temp file + rename).
//   - Assistants and threads keep insertion order on disk.
//   - Older entry shapes ({prompt, response} pairs and {role, text}) are
//     migrated on load; saves always write {role, content}.
//   - No locking: two processes saving the same document race and the later
//     save wins.
package memory
