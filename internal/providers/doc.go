// Package providers implements the cover-art source adapters.
//
// Each adapter turns an (artist, album, year) query into a list of Candidate
// results from one external catalog: the iTunes Search API, the Deezer album
// search, or MusicBrainz combined with the Cover Art Archive. Adapters share
// the Provider interface and are failure-isolated: an empty catalog response
// is an empty slice, not an error, while transport and parse failures
// propagate for the aggregator to contain.
//
// Release years are normalized with textutil.ParseYear (leading four-digit
// run); candidates whose source reports no usable date carry Year == 0.
package providers
