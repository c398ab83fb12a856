/*
Package main is an application package for the diagency-demo, a command line
harness that drives a diagency service through its REST API to demonstrate
mDoc/mDL verifiable credential issuance and verification.

The demo needs nothing but the agency: the DMV issuer, the bank verifier and
the holder are all agents of the same agency, and the tool plays every party
by calling the agency as each of them in turn.

# Commands

	run          runs the issuance and verification of a credential scenario
	setup        provisions the DMV and bank applications and writes their .env
	agent        lists and deletes the agents of the agency
	trust        refreshes the verifier's remote trust registries on a schedule
	fake-agency  starts an in-memory fake of the agency for local tries

# Sub-packages

	agent     the agency client: settings, secrets, polling and the environment
	cmds      the executable commands, usable without the CLI
	protocol  the credential flows: schemas, trust, issuance and presentation
	scenario  the credential scenarios and their test data
	server    the in-memory fake agency
*/
package main
