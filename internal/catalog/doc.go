// Package catalog reads the taxonomy and approved exemplars that ground every
// classification call.
//
// Two drivers exist. The sqlite driver reads a database maintained by the
// curation tooling that owns the taxonomy lifecycle; taxoclass only creates
// the schema when the file is new and never writes rows. The snapshot driver
// reads the same data from a TOML file, which is convenient for fixtures and
// offline runs.
//
// Both drivers satisfy taxonomy.Source and exemplar.Source so the engine never
// sees which one is configured.
package catalog
