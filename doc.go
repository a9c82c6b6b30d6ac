// Package aientity materializes typed records from free text by asking a
// chat-completion model for JSON and mapping the reply onto a declared
// schema.
//
// A record type is described by a SchemaDescriptor: a type name, an ordered
// list of primitive fields (string, int, bool, float) with optional
// descriptions, and the model endpoint used to fill them. Each Create call
// performs exactly one model call:
//
//	text → PromptBuilder → Invoker → Normalizer → ToRecord → T
//
// # Basic Usage
//
// Declare a struct; json tags name the fields and ai tags describe them:
//
//	type Person struct {
//	    Name  string `json:"name" ai:"full name"`
//	    Age   int    `json:"age" ai:"age in years"`
//	    Email string `json:"email"`
//	}
//
//	f, err := aientity.New[Person]()
//	if err != nil { ... }
//	p, err := f.CreateOne(ctx, "张三今年30岁，邮箱是zhangsan@example.com")
//	// p = &Person{Name: "张三", Age: 30, Email: "zhangsan@example.com"}
//
//	people, err := f.CreateMany(ctx, "张三30岁，李四25岁")
//
// Model, endpoint and credential are read from the environment
// (OPENAI_MODEL, OPENAI_API_URL, OPENAI_API_KEY) unless WithConfig or the
// per-field options are given. See LoadConfig.
//
// # Dynamic Schemas
//
// Schemas that are not known at compile time can be built directly or loaded
// from YAML, producing plain Records:
//
//	d, err := aientity.LoadDescriptor("person.yaml", aientity.DefaultConfig())
//	f, err := aientity.NewDynamic(d)
//	recs, err := f.CreateMany(ctx, text)
//	// recs[0]["age"] is an int64
//
// # Lists
//
// CreateMany accepts a bare JSON array, an object wrapping the array under
// one of the descriptor's wrapper keys ("persons", "data", "results" for
// Person by default), or a single object which is treated as a one-element
// list. Markdown code fences around the JSON are removed.
//
// # Sources
//
// CreateManyFromSource reads text from a Source (TextSource, FileSource,
// URLSource) first. CreateManyFromSources processes several sources
// concurrently and concatenates the results in source order.
//
// # Errors
//
// Failures are reported with distinct types so callers can react to them:
//
//	ErrEmptyInput            text empty or whitespace; no call was made
//	*TransportError          endpoint unreachable or body unreadable
//	*APIError                non-2xx status or error envelope
//	*ProtocolError           2xx body without choices[0].message.content
//	*MalformedResponseError  content is not JSON, or no array where one was needed
//	*FieldMappingError       a value cannot be coerced to its declared type
//	*SourceUnavailableError  a Source could not supply its content
//
// Use errors.Is and errors.As; Create operations wrap them with the record
// type name.
//
// # Dry Runs
//
// DryRun returns the exact request payload and token estimates without
// calling the model. Explain renders the same information as a plan tree:
//
//	plan, _ := f.Explain(ctx, text, aientity.FormatText)
//	fmt.Println(plan)
//
// # Retries
//
// Calls are made once by default. WithRetry enables exponential backoff for
// transport failures and 429 or 5xx responses.
//
// # Logging
//
// The package logs through log/slog. Pass WithLogger to route factory logs
// and the default call observer to a specific logger; WithObserver replaces
// call logging entirely.
package aientity
