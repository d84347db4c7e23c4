// Package api defines the JSON contract between the dashboard server and its
// clients, and a small HTTP client for that contract.
//
// # Overview
//
// The server exposes one filter engine per session. Every front end, whether
// a browser page or the terminal summary command, reads the same five
// display values through these types, so the labels, formatting and
// missing-value handling live here rather than in each client.
//
// # Architecture
//
//	┌──────────────┐   JSON over HTTP   ┌──────────────────────────┐
//	│   Client     │ ─────────────────► │  dashboard serve         │
//	│              │                    │                          │
//	│ CreateSession│  POST /sessions    │  session.Registry        │
//	│ SetSpecies   │  PUT  …/species    │     └─► filter.Engine    │
//	│ SetMaxMass   │  PUT  …/mass       │                          │
//	│ Summary      │  GET  …/summary    │  SummaryOf(engine)       │
//	│ Table        │  GET  …/table      │  TableOf(engine)         │
//	│ Scatter      │  GET  …/scatter    │  ScatterOf(engine)       │
//	└──────────────┘                    └──────────────────────────┘
//
// # Communication Protocol
//
// Session lifecycle:
//   - POST /sessions opens a session; omitted fields take the control defaults
//   - GET /sessions/{id} returns the current parameters
//   - DELETE /sessions/{id} closes it; idle sessions are also closed by the server
//
// Controls (PUT /sessions/{id}/species, PUT /sessions/{id}/mass):
//   - Each call replaces one parameter and returns the new parameter set
//   - Repeating a value is accepted and still counts as an update
//
// Display reads (GET /sessions/{id}/summary, table, scatter):
//   - Computed lazily from the session's current parameters
//   - Missing measurements encode as null
//   - An undefined mean encodes as null and displays as "N/A"
//
// # Failure Handling
//
// Non-2xx responses carry {"error": "..."} and surface as *StatusError.
// errors.Is(err, ErrNotFound) matches unknown sessions.
//
// # Example
//
//	c := api.NewClient("http://127.0.0.1:8080")
//	s, err := c.CreateSession(ctx, api.CreateSessionRequest{})
//	if err != nil {
//		return err
//	}
//	if _, err := c.SetMaxMass(ctx, s.ID, 4000); err != nil {
//		return err
//	}
//	sum, err := c.Summary(ctx, s.ID)
package api
