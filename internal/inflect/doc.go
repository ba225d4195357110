/*
Package inflect resolves the singular and plural spellings of collection names.

The registry addresses each collection by both forms, so the inflector must be
deterministic and idempotent: Plural(Plural(x)) == Plural(x) and
Singular(Singular(x)) == Singular(x).

Example Usage:

	inf := inflect.New()
	inf.Plural("post")     // "posts"
	inf.Plural("posts")    // "posts"
	inf.Singular("people") // "person"

	inf.AddIrregular("octopus", "octopodes")
*/
package inflect
