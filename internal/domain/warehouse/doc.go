// Package warehouse contains the Warehouse bounded context.
// This context describes the Yellowcube fulfillment provider as seen from the shop.
//
// Key concepts:
//   - OrderRecord / ArticleRecord: Inbound shop records handed to the connector
//   - ControlReference: Envelope header carried by every outbound request
//   - StatusOutcome: Acceptance decision derived from a provider status pair
//   - ValidationFailure: Recoverable input failure carrying a negative code
//   - ResultEnvelope: Uniform success/failure result of every operation
//
// Design Pattern: Ports & Adapters
//   - Ports (MessageCatalog, ErrorLog) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package warehouse
