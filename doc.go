// Package ormr is a minimal record mapper over an embedded SQLite database. It maps typed records to table rows through a small capability interface (table name, ordered field list, primary key, row conversion), performs parameterized CRUD, and offers a compact fluent builder for filtered, ordered, limited reads — all without struct tags, code generation, or a heavy ORM.

package ormr
