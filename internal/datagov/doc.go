// Package datagov fetches weekly surveillance records from the data.gov.sg
// datastore_search API and decodes them into surveillance.Record values.
//
// A Client issues exactly one GET per Load call. Numeric fields may arrive as
// JSON numbers or numeric strings and are coerced to ints. Responses that do
// not match the result/records schema fail the whole load with a
// *MalformedResponseError; transport problems and non-2xx statuses surface
// as *FetchError.
package datagov
