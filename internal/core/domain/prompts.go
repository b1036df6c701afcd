package domain

// DefaultCondenseTemplate rewrites a follow-up into a standalone question.
const DefaultCondenseTemplate = `Given the following conversation and a follow-up question, rephrase the follow-up question to be a standalone question.

<chat_history>
  {chat_history}
</chat_history>

Follow-Up Input: {question}
Standalone question:`

// DefaultAnswerTemplate answers a question from retrieved context.
const DefaultAnswerTemplate = `You are an expert researcher. Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say you don't know. DO NOT try to make up an answer.
If the question is not related to the context or chat history, politely respond that you are tuned to only answer questions that are related to the context.

<context>
  {context}
</context>

<chat_history>
  {chat_history}
</chat_history>

Question: {question}
Helpful answer in markdown:`

// Template placeholders.
const (
	PlaceholderChatHistory = "{chat_history}"
	PlaceholderQuestion    = "{question}"
	PlaceholderContext     = "{context}"
)
