// Package hyperroute routes point-to-point connections through a hypergraph
// of regions joined by ports, resolving contention between routes with
// rip-up and reroute.
//
// It exposes two main entry points:
//
//   - NewSolver: build a stepping solver over a Graph and an ordered list of
//     Connections. Each Step performs one unit of search work.
//   - CostPolicy: the pluggable heuristic and cost hooks a concrete router
//     supplies. NopPolicy gives uninformed cost-ordered search.
//
// Connections are solved one at a time. A connection whose search reaches
// its end region commits its route and claims the crossed ports; with
// ripping enabled it may displace routes of other networks, whose
// connections go back to the end of the backlog. Candidates live in an
// arena and refer to their parent by index.
package hyperroute
