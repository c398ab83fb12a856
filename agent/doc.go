/*
Package agent is a package for the agency client of the demo. It holds the
packages to talk to a diagency and to keep the demo's own agents in it.

The agent package is empty itself. All the functionality is inside
sub-packages:

	diagency  the authenticated REST client and its resources
	env       the environment: config, agents, connections and state asserts
	poll      waits until a resource reaches the wanted state
	secrets   keeps the client secrets of the created agents
	utils     process wide settings and helpers
*/
package agent
