/*
Package ports defines the driven ports (interfaces) of the quote configurator.

These interfaces decouple the wizard core from external implementations, allowing
the answer store to work with various blob backends and the quote workflow to talk
to any pricing API or CRM.

# Key Interfaces

  - BlobStore: persists the serialized answer tree under a string key.
  - DistributedLocker: coordinates concurrent session access across replicas.
  - AddressLookup / QuoteService: the remote pricing API.
  - LeadSink: the CRM that receives the final lead.
*/
package ports
