// Package biome holds the pure domain rules of the Biome CLI distribution:
// how version specifiers are classified, how release tags are named in each
// tagging epoch, how tags are coerced back into versions, and which release
// asset belongs to which platform.
package biome
