// Package buffer provides Builder, a growable byte buffer that behaves like
// a mutable string while keeping allocations low.
//
// A Builder writes into caller-supplied storage or into regions rented from
// a pool.Provider. When content outgrows the storage, the builder rents a
// larger region, copies the content over and hands the old region back, so
// it never holds more than one rented region. Dispose returns the current
// region; call it on every exit path:
//
//	b := buffer.NewString("Hello World")
//	defer b.Dispose()
//
//	b.Insert(5, ",")                             // "Hello, World"
//	b.InsertValue(b.Len(), buffer.Int(42), "d4") // "Hello, World0042"
//	b.Remove(5, 1)                               // "Hello World0042"
//	i := b.IndexOf("World")                      // 6
//
// Views returned by Bytes and pointers returned by At borrow the builder's
// storage. They are valid until the next mutating call or Dispose.
//
// All comparisons and searches are ordinal over bytes. Formatting through
// Formattable values is culture-invariant.
package buffer
