/*
Package protocol is package for the demo's protocol steps. The steps drive
the credential flows of the agency: credential schemas and definitions, the
trust configuration of the verifier, credential issuance and proof
presentation. The agency runs the actual protocol state machines; the steps
only request the state transitions and wait until the resources reach the
wanted states.

The steps use the agency through the Agency interface which env.Environment
implements. The mocks of the interface are in the protocol/mock package.
*/
package protocol
