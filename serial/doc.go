// Package serial converts between hyperroute graphs and their serialized
// form: regions keyed by id with port-id lists, ports with two region-id
// references, and connections with start and end region ids.
//
// Documents are read as YAML or JSON. Resolve turns a document into a graph
// and connections, failing with every structural error it finds before a
// solver is ever built.
package serial
