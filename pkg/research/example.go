package research

// ExampleTask is the fixed multi-line task loaded by LoadExample.
const ExampleTask = `Use Google Search to find up-to-date, accurate information for this task.

Your task:

1. Search for the keyword:
   **current population of Tokyo**

2. From the search results, pick an authoritative source such as:
   - An official statistics bureau page
   - A well-known encyclopedia entry

3. Open the page and find the most recent population estimate.

4. Report:
   - The population figure
   - The date the estimate refers to
   - The name of the source you used

5. Keep the answer under five sentences and cite every page you relied on.`
