// Package trackfile turns activities into destination paths and writes the
// downloaded GPX payloads to disk.
//
// Templates recognise {start_date}, {id}, {sport_type} and {name}
// ({created_at} is an alias of {start_date}). Unknown placeholders are
// rejected when the template is parsed so a bad export_format fails at
// startup rather than halfway through an export.
package trackfile
