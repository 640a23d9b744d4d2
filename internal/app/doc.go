// Package app composes the Fein services into a running application.
//
// The package structure is:
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── user/           # Users and credentials
//	│   ├── account/        # Transaction accounts
//	│   ├── transaction/    # Transactions and per-account breakdowns
//	│   ├── tag/            # Tags and tag assignments
//	│   └── report/         # Account summaries and overview reports
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # Store interfaces (UserStore, AccountStore, ...)
//	│   ├── memory/         # In-memory implementation for testing
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── httpapi/            # HTTP handlers, routing, and the audit log
//	├── auth/               # Password hashing and JWT issuance
//	├── services/           # Business logic services
//	├── system/             # Service lifecycle management
//	└── runtime/            # Process-level wiring (config, db, server)
//
// Domain models carry no business logic; services own validation and
// ownership rules; storage implementations stay behind the interfaces in
// storage/interfaces.go so every service runs against both the in-memory
// and the PostgreSQL store.
package app
