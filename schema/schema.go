// Package schema has models, constants and day helpers shared by all parts of hubstats.
package schema
