package sqlinline

const QEnsureJournalTable = `--sql 839a214a-ceec-4ae3-8e25-c41e1cf7d2b5
create table if not exists resolution_journal (
    seq bigserial primary key,
    id uuid not null,
    campaign_ref text not null unique,
    goal numeric not null,
    amount numeric not null,
    events jsonb not null default '[]'::jsonb,
    created_at timestamptz not null default now()
);
`

const QInsertJournalEntry = `--sql 9924f5c6-2131-443a-bc6a-41093675e8fa
insert into resolution_journal(id, campaign_ref, goal, amount, events, created_at)
values ($1::uuid, $2::text, $3::numeric, $4::numeric, coalesce($5::jsonb, '[]'::jsonb), $6::timestamptz)
on conflict (campaign_ref) do nothing
returning seq;
`

const QFindJournalEntry = `--sql 4c2e5a70-2f97-42b3-b3fa-b87571c8151c
select id::text, campaign_ref, goal::text, amount::text, events, created_at
from resolution_journal
where campaign_ref = $1::text
limit 1;
`

const QListJournalEntries = `--sql 041452a2-ae55-4d64-a870-e0a841ca5cbb
select id::text, campaign_ref, goal::text, amount::text, events, created_at
from resolution_journal
order by seq asc;
`
