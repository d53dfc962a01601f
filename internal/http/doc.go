// Package http exposes the attendance log as a JSON view-state API.
//
// The router exposes the following endpoints:
//   - GET / and GET /events: the catalog view. An optional `width` query
//     parameter selects the layout state; absent means narrow.
//   - GET /events/{eventId}: the event detail view. Unknown ids answer 404
//     with the not-found view in the body.
//   - GET /events/{eventId}/form, POST /events/{eventId}/form: the event
//     scoped record form. POST answers 201 when a record was created and 200
//     when the event's current record was replaced. Finished events answer 409.
//   - GET /form, POST /form: the unscoped record form. POST always creates.
//   - GET /records: every record in insertion order.
//   - GET /records/{id}, PUT /records/{id}: a single record view and its update.
//   - GET /layout: the bare layout state for `width`.
//   - GET /healthz and GET /metrics.
//
// Form submissions carry only the user-editable fields defined by
// formRequest in event_handler.go. The event link and the record being edited
// are always derived server side. When an owner passphrase is configured,
// POST and PUT require HTTP Basic credentials.
package http
